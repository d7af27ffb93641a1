package redis

import "fmt"

// playersKey returns the HASH holding one JSON record per player key
func playersKey(prefix string) string {
	return fmt.Sprintf("%s:players", prefix)
}

// writerLockKey returns the key used to serialise writers
func writerLockKey(prefix string) string {
	return fmt.Sprintf("%s:lock:players", prefix)
}
