// Package core provides the business logic for BRM report generation.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server and the brmreport CLI drive the same [Service].
//
// # Pipeline
//
// A run takes one uploaded workbook or CSV file and produces a zip archive:
//
//  1. The [Decoder] turns the upload into a [Table] of untyped cells.
//  2. The [Normalizer] coerces declared columns to text, numbers or dates.
//  3. [Partition] groups rows by the schema's key column (BRM by default).
//  4. The [Renderer] writes the consolidated table and each group into the
//     report template.
//  5. The [Packager] bundles every document into a single archive.
//
// Rows whose key is missing appear only in the consolidated document.
//
// # Schema Registry
//
// Schemas are registered at init time using [Register]:
//
//	core.Register(core.Schema{
//	    Key:       "beneficiary",
//	    KeyColumn: "BRM",
//	    Fields: []core.FieldSpec{
//	        {Name: "Client Name", Type: core.FieldText},
//	        {Name: "Quoted Premium", Type: core.FieldNumeric},
//	        {Name: "policy_start_date", Type: core.FieldDate},
//	    },
//	})
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - RPT001: grouping key column missing from the input
//   - FILE001-FILE006: file errors (size, encoding, format)
//   - TPL001, SCH001: template and schema errors
//   - UPL002-UPL005: generation busy, cancelled or timed out
package core
