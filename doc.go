// Package dms defines the interfaces and primitive types shared by the
// document management service. Implementations of the storage model live in
// the storage package, with the HTTP frontend under handlers. Most consumers
// will interact with a dms.Namespace obtained from storage.NewRegistry.
package dms
