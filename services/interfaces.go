package services

import (
	"roster/storage"
)

// RepositoryFactory resolves a backend tag to a repository.
// Production uses factory.Factory; tests pass mocks.
type RepositoryFactory interface {
	ForBackend(tag storage.Backend) (storage.Repository, error)
}

// ChangeListener is notified after every mutation of a WorkingSet.
type ChangeListener interface {
	OnChanged()
}

// ChangeListenerFunc adapts a plain function to ChangeListener.
type ChangeListenerFunc func()

func (f ChangeListenerFunc) OnChanged() {
	f()
}
