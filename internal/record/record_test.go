package record_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relmap/internal/dberr"
	"github.com/roach88/relmap/internal/record"
	"github.com/roach88/relmap/internal/schema"
	"github.com/roach88/relmap/internal/typeconv"
)

var accounts = &schema.Relation{
	Name:  "account",
	Table: "accounts",
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeInt, PrimaryKey: true},
		{Name: "email", Type: schema.TypeString},
	},
}

// account is a hand-written record over the accounts relation.
type account struct {
	rel   *schema.Relation
	ID    *record.Holder[int64]
	Email *record.Holder[string]
}

func newAccount(rel *schema.Relation) *account {
	a := &account{rel: rel}
	a.ID = record.NewHolder[int64](a, "id")
	a.Email = record.NewHolder[string](a, "email")
	return a
}

func (a *account) Relation() *schema.Relation { return a.rel }
func (a *account) Slots() []record.Slot      { return []record.Slot{a.ID, a.Email} }

func TestHolder_EmptyState(t *testing.T) {
	h := record.NewHolder[string](nil, "email")

	assert.False(t, h.IsSet())
	assert.Equal(t, "", h.Get())
	_, ok := h.Lookup()
	assert.False(t, ok)
	assert.Equal(t, record.EmptyHash, h.Hash())
	assert.Equal(t, "email=<empty>", h.String())

	v, ok := h.Any()
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestHolder_SetAndClear(t *testing.T) {
	h := record.NewHolder[int64](nil, "id").Set(7)

	v, ok := h.Lookup()
	require.True(t, ok)
	assert.Equal(t, int64(7), v)
	assert.Equal(t, "id=7", h.String())

	// zero is a value, not absence
	h.Set(0)
	assert.True(t, h.IsSet())

	h.Clear()
	assert.False(t, h.IsSet())
	assert.Equal(t, record.EmptyHash, h.Hash())
}

func TestHolder_Equal(t *testing.T) {
	empty1 := record.NewHolder[string](nil, "a")
	empty2 := record.NewHolder[string](nil, "b")
	x1 := record.NewHolder[string](nil, "a").Set("x")
	x2 := record.NewHolder[string](nil, "b").Set("x")
	y := record.NewHolder[string](nil, "a").Set("y")

	assert.True(t, empty1.Equal(empty2))
	assert.False(t, empty1.Equal(x1))
	assert.False(t, x1.Equal(empty1))
	assert.True(t, x1.Equal(x2))
	assert.Equal(t, x1.Hash(), x2.Hash())
	assert.False(t, x1.Equal(y))
	assert.True(t, x1.Equal(x1))
	assert.False(t, x1.Equal(nil))
}

func TestHolder_SameAs(t *testing.T) {
	a := newAccount(accounts)
	b := newAccount(accounts)
	a.Email.Set("ada@example.com")
	b.Email.Set("grace@example.com")

	assert.True(t, a.Email.SameAs(b.Email), "identity ignores value")
	assert.False(t, a.Email.Equal(b.Email))
	assert.False(t, a.Email.SameAs(a.ID))

	upper := newAccount(&schema.Relation{Name: "account", Table: "ACCOUNTS", Fields: accounts.Fields})
	assert.True(t, a.Email.SameAs(upper.Email), "relation identity ignores case")

	other := newAccount(&schema.Relation{Name: "user", Table: "users", Fields: accounts.Fields})
	assert.False(t, a.Email.SameAs(other.Email))

	assert.Equal(t, record.HolderKey{Relation: "accounts", Name: "email"}, a.Email.Key())
}

func TestIndex_KeyedByIdentity(t *testing.T) {
	a := newAccount(accounts)
	idx := record.NewIndex[string]()

	a.Email.Set("before")
	idx.Put(a.Email, "tracked")
	a.Email.Set("after")

	v, ok := idx.Get(a.Email)
	require.True(t, ok, "mutating the value must not lose the entry")
	assert.Equal(t, "tracked", v)

	// a second record's holder for the same field resolves to the same entry
	b := newAccount(accounts)
	v, ok = idx.Get(b.Email)
	assert.True(t, ok)
	assert.Equal(t, "tracked", v)

	_, ok = idx.Get(a.ID)
	assert.False(t, ok)

	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.Delete(b.Email))
	assert.False(t, idx.Delete(b.Email))
	assert.Equal(t, 0, idx.Len())
}

func TestHolder_Load(t *testing.T) {
	a := newAccount(accounts)
	row := typeconv.MapRow{"a_id": int64(3), "a_email": nil}

	ok, err := a.ID.Load(typeconv.Standard{}, row, "a_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), a.ID.Get())

	a.Email.Set("stale")
	ok, err = a.Email.Load(typeconv.Standard{}, row, "a_email")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, a.Email.IsSet(), "NULL clears the holder")

	_, err = a.ID.Load(typeconv.Standard{}, typeconv.MapRow{"a_id": "abc"}, "a_id")
	require.Error(t, err)
	assert.True(t, dberr.IsCode(err, dberr.CodeDecode))
}

func TestHolder_ConcurrentAccess(t *testing.T) {
	h := record.NewHolder[int](nil, "n")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Set(i)
		}()
		go func() {
			defer wg.Done()
			_ = h.Get()
			_ = h.Hash()
		}()
	}
	wg.Wait()

	assert.True(t, h.IsSet())
}

func TestDynamic(t *testing.T) {
	rel := &schema.Relation{
		Name: "event",
		Fields: []schema.Field{
			{Name: "id", Type: schema.TypeInt},
			{Name: "score", Type: schema.TypeFloat},
			{Name: "ok", Type: schema.TypeBool},
			{Name: "at", Type: schema.TypeTime},
			{Name: "body", Type: schema.TypeBytes},
			{Name: "name", Type: schema.TypeString},
		},
	}
	d := record.NewDynamic(rel)

	require.NoError(t, record.CheckShape(d))
	names := make([]string, 0, len(d.Slots()))
	for _, s := range d.Slots() {
		names = append(names, s.Name())
	}
	assert.Equal(t, rel.FieldNames(), names)

	id, err := record.HolderOf[int64](d, "id")
	require.NoError(t, err)
	id.Set(1)

	at, err := record.HolderOf[time.Time](d, "at")
	require.NoError(t, err)
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	at.Set(ts)

	assert.Equal(t, map[string]any{"id": int64(1), "at": ts}, d.Values())

	_, err = record.HolderOf[string](d, "id")
	require.Error(t, err)
	assert.True(t, dberr.IsCode(err, dberr.CodeDecode))

	_, err = record.HolderOf[string](d, "missing")
	require.Error(t, err)
	assert.True(t, dberr.IsCode(err, dberr.CodeNotFound))

	s, ok := d.Slot("body")
	require.True(t, ok)
	assert.IsType(t, &record.Holder[string]{}, s)
}

// shortRecord declares fewer slots than its relation has fields.
type shortRecord struct{ id *record.Holder[int64] }

func (r *shortRecord) Relation() *schema.Relation { return accounts }
func (r *shortRecord) Slots() []record.Slot      { return []record.Slot{r.id} }

// swappedRecord declares its slots out of order.
type swappedRecord struct{ *account }

func (r swappedRecord) Slots() []record.Slot { return []record.Slot{r.Email, r.ID} }

func TestCheckShape_Mismatch(t *testing.T) {
	short := &shortRecord{}
	short.id = record.NewHolder[int64](short, "id")

	err := record.CheckShape(short)
	require.Error(t, err)
	assert.True(t, dberr.IsCode(err, dberr.CodeDecode))
	assert.Contains(t, err.Error(), "1 slots")

	err = record.CheckShape(swappedRecord{newAccount(accounts)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `slot 0 is "email"`)
}
