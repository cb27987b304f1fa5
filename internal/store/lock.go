// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package store

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// lockStripes bounds lock memory while keeping collisions between unrelated
// fingerprints rare.
const lockStripes = 64

// stripedLock serializes capture operations per occasion fingerprint so
// the lookup-then-merge-or-insert sequence is atomic for a given identity.
// Different fingerprints proceed in parallel unless they collide on a stripe.
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

// Lock acquires the stripe for key and returns the matching unlock func.
func (l *stripedLock) Lock(key string) func() {
	m := &l.stripes[xxhash.Sum64String(key)%lockStripes]
	m.Lock()
	return m.Unlock
}
