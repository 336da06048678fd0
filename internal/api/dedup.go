package api

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"

	"geo-leads/internal/logger"
)

// seenFilter：Redis 位图上的布隆过滤器，按天分键，用于统计去重
// 约束：rc 为 nil 或 Redis 出错时一律视为首次出现
type seenFilter struct {
	rc  *redis.Client
	m   uint32
	k   int
	ttl time.Duration
	now func() time.Time
}

func newSeenFilter(rc *redis.Client, m uint32, k int, ttl time.Duration) *seenFilter {
	return &seenFilter{rc: rc, m: m, k: k, ttl: ttl, now: time.Now}
}

// bloomPositions：FNV64a 加索引前缀生成 k 个位置
func bloomPositions(data []byte, m uint32, k int) []int64 {
	pos := make([]int64, k)
	for i := 0; i < k; i++ {
		h := fnv.New64a()
		h.Write([]byte{byte(i)})
		h.Write(data)
		pos[i] = int64(h.Sum64() % uint64(m))
	}
	return pos
}

func (f *seenFilter) key() string {
	return "geoleads:seen:" + f.now().UTC().Format("20060102")
}

// firstSeen：true 表示今天首次出现（并已记录）
func (f *seenFilter) firstSeen(ctx context.Context, item string) bool {
	if f == nil || f.rc == nil {
		return true
	}
	key := f.key()
	pos := bloomPositions([]byte(item), f.m, f.k)
	pipe := f.rc.Pipeline()
	cmds := make([]*redis.IntCmd, len(pos))
	for i, p := range pos {
		cmds[i] = pipe.GetBit(ctx, key, p)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.L().Debug("seen_filter_error", "err", err)
		return true
	}
	seen := true
	for _, c := range cmds {
		if c.Val() == 0 {
			seen = false
			break
		}
	}
	if seen {
		return false
	}
	pipe = f.rc.Pipeline()
	for _, p := range pos {
		pipe.SetBit(ctx, key, p, 1)
	}
	pipe.Expire(ctx, key, f.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.L().Debug("seen_filter_error", "err", err)
	}
	return true
}
