// Package spreadsheet turns CSV and XLSX supply lists into import candidates.
//
// Column headers are matched against known synonyms with a fuzzy score, so
// files exported from different inventory systems can be imported without
// renaming columns first.
package spreadsheet
