// Package schema declares the odmat tables as ent schemas.
//
// The store does not use a generated ent client. It builds queries with
// entgo.io/ent/dialect/sql and migrates store.Tables, which must list the
// same columns in the same order as the schemas here; schema_test.go keeps
// the two in step. To print the schemas as tables:
//
//	go generate ./ent/schema
package schema

//go:generate go run -mod=mod entgo.io/ent/cmd/ent describe .
