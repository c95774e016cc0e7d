// Package testutil provides fakes and fixtures shared by package tests:
// an in-memory filesystem seeded with files, a scripted file watcher and a
// testify mock of the clipboard port.
package testutil
