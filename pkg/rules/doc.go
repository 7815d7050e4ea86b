// Package rules decides which files of a source tree are left out of the
// distribution.
//
// A rule is one of four kinds:
//
//   - names: literal file names, excluded when they exist
//   - wildcard: single-level shell patterns such as `msg*` or `*-config`
//   - subtree: patterns ending in `**` that drop a directory at any depth
//   - invert: "keep only" rules; every file of a scope is excluded except the
//     candidates whose basename matches a regular expression
//
// Every rule resolves to a set of absolute paths. The exclude set is the
// union over all rules and the copy set is every enumerated source file not
// in it. Evaluation never touches the destination, so the copy set is fully
// known before anything is written.
//
// In configuration, a plain pattern list is split into names, wildcard and
// subtree rules by Classify:
//
//	[[exclude]]
//	dir = "lib"
//	patterns = ["pkgconfig**", "libgettextlib*", "charset.alias"]
//
//	[[keep_only]]
//	dir = "share/locale"
//	patterns = ["de/*/*", "fr/*/*"]
//	match = 'gnupg2\.mo'
package rules
