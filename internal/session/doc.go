// Package session hosts one editable document and its annotation set.
//
// A Session holds the current snapshot behind an atomic pointer, so any
// goroutine may read a consistent document and set while a single writer
// installs new versions. Edits come either synchronously through Apply or
// asynchronously through Submit and Run:
//
//	s, _ := session.Open(engine.New(), doc)
//	go s.Run(ctx)
//
//	tr := transform.New(s.Current().Doc)
//	tr.InsertText(1, "x")
//	s.Submit(ctx, session.EditFrom(tr))
//
// An edit names the document it was made against. If another edit was
// installed first, the edit is rejected with ErrStaleEdit and the host must
// rebuild it against the new document.
package session
