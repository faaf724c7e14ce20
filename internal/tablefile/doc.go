// Package tablefile encodes and decodes one table of records as a
// self-describing JSON document.
//
// # File Layout
//
//	{
//	  "format": "salesdb.table",
//	  "version": 1,
//	  "table": "Good",
//	  "count": 2,
//	  "checksum": "…",
//	  "records": [ … ]
//	}
//
// Records are written in table order. The checksum is SHA-256 with domain
// separation over the compact JSON of every record joined by '\n', so a
// truncated or hand-edited file is rejected on decode rather than loaded
// partially.
//
// HTML escaping is disabled so that text such as "Fish & Chips" is stored
// as written.
package tablefile
