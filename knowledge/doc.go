// Package knowledge loads line-delimited knowledge base files.
//
// Each non-blank line, trimmed of surrounding whitespace, becomes one passage
// in file order. Load never fails and reports problems through a status
// string; LoadFile and LoadReader return errors wrapping core.ErrCorpusLoad.
//
// Watcher reloads the file when it changes on disk and hands the new corpus
// to a callback.
package knowledge
