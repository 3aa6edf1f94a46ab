// Package tokenizer splits identifier names into their constituent words.
//
// Splitting is conservative. Runs of '_' and '$' separate words, and a word
// boundary is placed before an upper case letter that directly follows a lower
// case letter. Nothing else splits: digits stay attached, and runs of upper
// case letters such as acronyms are kept whole.
//
//	tokenizer.Tokenize("someThing2Eat")      // ["some", "Thing2Eat"]
//	tokenizer.Tokenize("HTTPServer_config")  // ["HTTPServer", "config"]
//	tokenizer.Tokenize("$$a_$_b$$")          // ["a", "b"]
package tokenizer
