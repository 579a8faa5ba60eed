package config

// Cost configures the cost module. There are no tunable thresholds
// beyond the module toggle itself; the expensive-API table and
// rate-limit/cache marker sets are fixed.
type Cost struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// DefaultCost returns the default cost configuration.
func DefaultCost() Cost {
	return Cost{Enabled: true}
}

// ExpensiveAPIs is the fixed table of vendor calls with a known
// per-invocation cost.
var ExpensiveAPIs = []string{
	"openai.chat.completions.create",
	"openai.completions.create",
	"openai.embeddings.create",
	"openai.images.generate",
	"anthropic.messages.create",
	"anthropic.completions.create",
	"cohere.generate",
	"replicate.run",
	"cloudinary.uploader.upload",
	"cloudinary.uploader.destroy",
	"sharp(",
	"ffmpeg",
	"cloudconvert",
}

// RateLimitMarkers suppress expensive-api-in-loop when present in a loop body.
var RateLimitMarkers = []string{
	"p-limit", "plimit", "bottleneck", "ratelimit",
	"sleep(", "delay(", "wait(", "throttle", "debounce",
	"asyncio.sleep", "time.sleep",
}

// CacheMarkers suppress missing-cache-for-expensive-call when present in a
// function body.
var CacheMarkers = []string{
	"cache.get", "cache.set", "redis.get", "redis.set",
	"localstorage.get", "sessionstorage.get",
	"map.get", "map.set", "lru", "memoize", "@cache", "functools.lru_cache",
}
