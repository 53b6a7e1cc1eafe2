// Package uberstore implements the UberStore concurrency strategy (§5,
// §9 DESIGN NOTES): one Strategy per selector value, each answering the
// same six queries so the Emission Engine never branches on the
// selector's tag directly.
package uberstore

import (
	"fmt"

	"github.com/uberFoo/grace-sub001/internal/config"
)

// Strategy is the concurrency-primitive contract emitters consult.
type Strategy interface {
	// WrapperType wraps inner (a Rust type name) in this strategy's lock
	// type, e.g. "Arc<RwLock<T>>".
	WrapperType(inner string) string
	// ImportBlock returns the `use` lines this strategy requires.
	ImportBlock() []string
	// LockRead returns the read-through expression for accessing expr.
	LockRead(expr string) string
	// LockWrite returns the write-through expression for mutating expr.
	LockWrite(expr string) string
	// IsAsync reports whether accessors built on this strategy are async.
	IsAsync() bool
	// Wrap returns the expression that constructs this strategy's wrapper
	// type around expr, e.g. "Arc::new(RwLock::new(expr))".
	Wrap(expr string) string
}

type single struct{}

func (single) WrapperType(inner string) string { return inner }
func (single) ImportBlock() []string           { return nil }
func (single) LockRead(expr string) string     { return expr }
func (single) LockWrite(expr string) string    { return expr }
func (single) IsAsync() bool                   { return false }
func (single) Wrap(expr string) string         { return expr }

type stdRWLock struct{}

func (stdRWLock) WrapperType(inner string) string {
	return fmt.Sprintf("Arc<RwLock<%s>>", inner)
}
func (stdRWLock) ImportBlock() []string {
	return []string{"use std::sync::{Arc, RwLock};"}
}
func (stdRWLock) LockRead(expr string) string  { return expr + ".read().unwrap()" }
func (stdRWLock) LockWrite(expr string) string { return expr + ".write().unwrap()" }
func (stdRWLock) IsAsync() bool                { return false }
func (stdRWLock) Wrap(expr string) string      { return fmt.Sprintf("Arc::new(RwLock::new(%s))", expr) }

type stdMutex struct{}

func (stdMutex) WrapperType(inner string) string {
	return fmt.Sprintf("Arc<Mutex<%s>>", inner)
}
func (stdMutex) ImportBlock() []string {
	return []string{"use std::sync::{Arc, Mutex};"}
}
func (stdMutex) LockRead(expr string) string  { return expr + ".lock().unwrap()" }
func (stdMutex) LockWrite(expr string) string { return expr + ".lock().unwrap()" }
func (stdMutex) IsAsync() bool                { return false }
func (stdMutex) Wrap(expr string) string      { return fmt.Sprintf("Arc::new(Mutex::new(%s))", expr) }

type parkingLotRWLock struct{}

func (parkingLotRWLock) WrapperType(inner string) string {
	return fmt.Sprintf("Arc<parking_lot::RwLock<%s>>", inner)
}
func (parkingLotRWLock) ImportBlock() []string {
	return []string{"use std::sync::Arc;", "use parking_lot::RwLock;"}
}
func (parkingLotRWLock) LockRead(expr string) string  { return expr + ".read()" }
func (parkingLotRWLock) LockWrite(expr string) string { return expr + ".write()" }
func (parkingLotRWLock) IsAsync() bool                { return false }
func (parkingLotRWLock) Wrap(expr string) string {
	return fmt.Sprintf("Arc::new(parking_lot::RwLock::new(%s))", expr)
}

type parkingLotMutex struct{}

func (parkingLotMutex) WrapperType(inner string) string {
	return fmt.Sprintf("Arc<parking_lot::Mutex<%s>>", inner)
}
func (parkingLotMutex) ImportBlock() []string {
	return []string{"use std::sync::Arc;", "use parking_lot::Mutex;"}
}
func (parkingLotMutex) LockRead(expr string) string  { return expr + ".lock()" }
func (parkingLotMutex) LockWrite(expr string) string { return expr + ".lock()" }
func (parkingLotMutex) IsAsync() bool                { return false }
func (parkingLotMutex) Wrap(expr string) string {
	return fmt.Sprintf("Arc::new(parking_lot::Mutex::new(%s))", expr)
}

type asyncRWLock struct{}

func (asyncRWLock) WrapperType(inner string) string {
	return fmt.Sprintf("Arc<tokio::sync::RwLock<%s>>", inner)
}
func (asyncRWLock) ImportBlock() []string {
	return []string{"use std::sync::Arc;", "use tokio::sync::RwLock;"}
}
func (asyncRWLock) LockRead(expr string) string  { return expr + ".read().await" }
func (asyncRWLock) LockWrite(expr string) string { return expr + ".write().await" }
func (asyncRWLock) IsAsync() bool                { return true }
func (asyncRWLock) Wrap(expr string) string {
	return fmt.Sprintf("Arc::new(tokio::sync::RwLock::new(%s))", expr)
}

type ndRWLock struct{}

func (ndRWLock) WrapperType(inner string) string {
	return fmt.Sprintf("Arc<no_deadlocks::RwLock<%s>>", inner)
}
func (ndRWLock) ImportBlock() []string {
	return []string{"use std::sync::Arc;", "use no_deadlocks::RwLock;"}
}
func (ndRWLock) LockRead(expr string) string  { return expr + ".read().unwrap()" }
func (ndRWLock) LockWrite(expr string) string { return expr + ".write().unwrap()" }
func (ndRWLock) IsAsync() bool                { return false }
func (ndRWLock) Wrap(expr string) string {
	return fmt.Sprintf("Arc::new(no_deadlocks::RwLock::new(%s))", expr)
}

type disabled struct{ single }

// For selects a Strategy from a config.UberStoreKind.
func For(kind config.UberStoreKind) Strategy {
	switch kind {
	case config.StdRwLock:
		return stdRWLock{}
	case config.StdMutex:
		return stdMutex{}
	case config.ParkingLotRwLock:
		return parkingLotRWLock{}
	case config.ParkingLotMutex:
		return parkingLotMutex{}
	case config.AsyncRwLock:
		return asyncRWLock{}
	case config.NDRwLock:
		return ndRWLock{}
	case config.Disabled:
		return disabled{}
	default:
		return single{}
	}
}
