// Package relspec loads relation definitions from a directory of CUE and
// YAML files.
//
// CUE files declare relations under a top-level relation struct, keyed by
// relation name:
//
//	package specs
//
//	relation: accounts: {
//	    fields: [
//	        {name: "id", type: "int", primary_key: true},
//	        {name: "email", type: "string"},
//	        {name: "displayName", column: "display_name", type: "string", nullable: true},
//	    ]
//	    indexes: [{name: "accounts_email", columns: ["email"], unique: true}]
//	}
//
// YAML files use the same shape as a list under relations:
//
//	relations:
//	  - name: orders
//	    fields:
//	      - {name: id, type: int, primary_key: true}
//	      - {name: total, type: float}
//
// Errors are *LoadError values carrying an E-code and, where known, the
// source position.
package relspec
