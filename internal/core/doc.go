// Package core holds the record collection domain: parsing exports,
// faceting by collection folder and projecting artist and album views.
//
// Nothing here knows about HTTP or terminals. The web server and the
// terminal browser both drive a [Service].
//
// # Data flow
//
//  1. A [Loader] fetches every configured [Source] concurrently
//  2. The first source that parses to at least one record wins; the rest
//     are cancelled and late results are dropped
//  3. [Service.Commit] installs the records in the [Store] and selects
//     every folder found by [ExtractFolders]
//  4. Views call [VisibleRecords], [UniqueArtists] and [AlbumsForArtist]
//
// # Parsing
//
// [Parse] is a small line scanner, not a general CSV reader. Quotes only
// toggle whether a comma splits a field; there are no escaped quotes and no
// multi-line fields. Rows whose field count differs from the header are
// dropped without error.
//
// # Folder selection
//
// [Selection] distinguishes "no filter" from "filter that matches nothing".
// A fresh load selects every folder; [Selection.Clear] leaves nothing
// visible.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - LOAD001-LOAD003: collection load failures
//   - FILE001-FILE005: file errors (size, missing, empty)
//   - UPL001-UPL005: upload errors (type, busy, cancelled, timeout)
//   - LKP001-LKP003: remote lookup errors
package core
