package cache

const (
	keyCooldown  = "cooldown:%s"
	keyRateLimit = "ratelimit:%s"
)
