// Package filestore persists calendar pages as plain UTF-8 text.
//
// Two encodings share the line grammar of persistence.EncodePage:
//
//   - AggregateStore keeps every page as one line of a single file.
//   - SplitStore keeps each page in its own YYYY-MM-DD.txt file inside a
//     folder, one line per file.
//
// Both treat a missing target as an empty calendar so the first run can
// bootstrap. Saves replace the previous contents entirely. Neither store locks
// its target; two processes saving to the same location race and the last
// writer wins.
package filestore
