package vocab

import "sync"

// KeyedMutex serializes read-modify-write cycles per (user, language, word)
// key. Passive-listening updates and practice-feedback updates touch the
// same rows and must share one instance.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entryLock)}
}

// Lock acquires the lock for key and returns the unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &entryLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func entryKey(userID, language, word string) string {
	return userID + "\x00" + language + "\x00" + word
}
