package redisx

import "fmt"

const keyResourceLock = "booking:lock:resource:%s"

// ResourceLockKey returns the key guarding reservation creation on resourceID.
func ResourceLockKey(resourceID string) string {
	return fmt.Sprintf(keyResourceLock, resourceID)
}
