package fortune

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"
)

// Seed 构造选取种子字符串，同一(用户, 日期)组合每天固定
func Seed(userID string, date time.Time) string {
	return fmt.Sprintf("%s-%s", userID, date.Format("2006-01-02"))
}

// NewRand 以种子字符串创建请求级随机数发生器。
// 不使用全局随机数状态，避免并发请求互相干扰。
func NewRand(seed string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// Select 从目录中确定性抽取一条运势：先均匀抽分类键，再均匀抽条目。
// 传入的rng应由NewRand按(用户, 日期)种子创建，同一rng还会继续
// 驱动后续渐变色的抽取，保证整次渲染可复现。
func Select(catalog *Catalog, rng *rand.Rand) (Entry, error) {
	if catalog == nil || catalog.Len() == 0 {
		return Entry{}, ErrEmptyCatalog
	}

	keys := catalog.Keys()
	key := keys[rng.Intn(len(keys))]

	entries, ok := catalog.Entries(key)
	if !ok || len(entries) == 0 {
		// 键取自目录自身，走到这里说明目录在选取期间被改动
		return Entry{}, fmt.Errorf("%w: %s", ErrMissingCategory, key)
	}

	entry := entries[rng.Intn(len(entries))]
	return entry.withDefaults(), nil
}
