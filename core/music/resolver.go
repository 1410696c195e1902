package music

import (
	"context"
	"time"

	"TingFM/cache"
	"TingFM/logger"
	"TingFM/model"

	"golang.org/x/time/rate"
)

// Resolver 曲库查询的统一入口。
// 搜索按固定优先级逐个音源尝试，第一个有结果的赢；播放地址按歌曲的
// 音源标签分发。上游的失败在这一层全部消化掉：搜索失败等同于空结果，
// 解析失败退化成音源站内的网页地址，调用方永远拿不到错误。
type Resolver struct {
	providers []Provider // 顺序即降级顺序
	bySource  map[model.MusicSource]Provider
	limiters  map[model.MusicSource]*rate.Limiter
	cache     *cache.MusicCache
	timeout   time.Duration
}

// NewResolver 创建查询入口。rps限制每个音源每秒的上游请求数，
// 0或负数表示不限流。
func NewResolver(musicCache *cache.MusicCache, timeout time.Duration, rps int, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: providers,
		bySource:  make(map[model.MusicSource]Provider, len(providers)),
		limiters:  make(map[model.MusicSource]*rate.Limiter, len(providers)),
		cache:     musicCache,
		timeout:   timeout,
	}

	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = rps
	}
	for _, p := range providers {
		r.bySource[p.Source()] = p
		r.limiters[p.Source()] = rate.NewLimiter(limit, burst)
	}
	return r
}

// Search 搜索歌曲。任何音源出错只记日志，继续试下一个；
// 全部落空时返回空列表，由上层提示未找到。
func (r *Resolver) Search(ctx context.Context, keyword string, limit int) []*model.Song {
	if songs, ok := r.cache.GetSearch(ctx, keyword, limit); ok {
		logger.Debug("搜索缓存命中", logger.String("keyword", keyword))
		return songs
	}

	for _, p := range r.providers {
		songs, err := r.searchProvider(ctx, p, keyword, limit)
		if err != nil {
			logger.Warn("音源搜索失败",
				logger.String("source", string(p.Source())),
				logger.String("keyword", keyword),
				logger.ErrorField(err))
			continue
		}
		if len(songs) == 0 {
			continue
		}

		r.cache.SetSearch(ctx, keyword, limit, songs)
		return songs
	}
	return nil
}

func (r *Resolver) searchProvider(ctx context.Context, p Provider, keyword string, limit int) ([]*model.Song, error) {
	if err := r.limiters[p.Source()].Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return p.Search(ctx, keyword, limit)
}

// ResolveURL 解析歌曲的播放地址并记在歌曲实体上。
// 结果三选一：实体上已有的地址（幂等，不再发请求）、音源的直链、
// 音源站内网页兜底。直链才会进共享缓存，兜底地址只记在实体上。
func (r *Resolver) ResolveURL(ctx context.Context, song *model.Song) string {
	if u := song.URL(); u != "" {
		return u
	}

	if u, ok := r.cache.GetSongURL(ctx, song.Source, song.ID); ok {
		song.SetURL(u)
		return song.URL()
	}

	p, ok := r.bySource[song.Source]
	if !ok {
		logger.Warn("未知音源，无法解析播放地址",
			logger.String("source", string(song.Source)),
			logger.String("song", song.ID))
		return ""
	}

	u, err := r.resolveProvider(ctx, p, song)
	if err != nil {
		logger.Warn("解析直链失败，使用网页兜底",
			logger.String("source", string(song.Source)),
			logger.String("song", song.ID),
			logger.ErrorField(err))
		u = p.FallbackURL(song)
	} else {
		r.cache.SetSongURL(ctx, song.Source, song.ID, u)
	}

	song.SetURL(u)
	// 并发解析时先写的胜出，统一回读实体上的值
	return song.URL()
}

func (r *Resolver) resolveProvider(ctx context.Context, p Provider, song *model.Song) (string, error) {
	if err := r.limiters[p.Source()].Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return p.ResolveURL(ctx, song)
}
