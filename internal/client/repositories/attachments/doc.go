// Package attachments provides the client-side cache of persisted attachment
// references.
//
// # Overview
//
// A host record (an event or club draft in the terminal client) owns the
// attachment references returned by the file-serving backend. The Repository
// interface keeps them locally so they can be listed, previewed and
// downloaded later. SQLiteRepository persists them through a dbx.DBTX
// (either *sql.DB or *sql.Tx).
//
// Typical Usage
//
//	repo := attachments.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, ref)
//	list, _ := repo.ListByRecord(ctx, "spring-fair")
//	one, _ := repo.GetByID(ctx, ref.ID)
//	_ = repo.DeleteByID(ctx, ref.ID)
package attachments
