package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"TingFM/logger"
	"TingFM/model"

	"github.com/go-redis/redis/v8"
)

const (
	// 键格式
	songURLKeyFormat = "music:url:%s:%s" // music:url:{source}:{songID}
	searchKeyFormat  = "music:search:%s" // music:search:{sha1(keyword:limit)}

	// 过期时间。直链带签名会失效，不宜久存；搜索结果短缓解决连续点歌
	songURLTTL = time.Hour
	searchTTL  = 30 * time.Minute
)

// MusicCache 曲库查询缓存。
// 所有方法都容忍Redis缺席：客户端为nil时读返回未命中，写直接丢弃。
type MusicCache struct {
	client *redis.Client
}

// NewMusicCache 创建曲库缓存
func NewMusicCache() *MusicCache {
	return &MusicCache{client: RedisClient}
}

func (c *MusicCache) ready() bool {
	return c != nil && c.client != nil
}

// GetSongURL 读取缓存的播放地址
func (c *MusicCache) GetSongURL(ctx context.Context, source model.MusicSource, songID string) (string, bool) {
	if !c.ready() {
		return "", false
	}

	key := fmt.Sprintf(songURLKeyFormat, source, songID)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("读取播放地址缓存失败",
				logger.String("key", key),
				logger.ErrorField(err))
		}
		return "", false
	}
	return val, true
}

// SetSongURL 写入播放地址缓存
func (c *MusicCache) SetSongURL(ctx context.Context, source model.MusicSource, songID, url string) {
	if !c.ready() || url == "" {
		return
	}

	key := fmt.Sprintf(songURLKeyFormat, source, songID)
	if err := c.client.Set(ctx, key, url, songURLTTL).Err(); err != nil {
		logger.Warn("写入播放地址缓存失败",
			logger.String("key", key),
			logger.ErrorField(err))
	}
}

// GetSearch 读取缓存的搜索结果
func (c *MusicCache) GetSearch(ctx context.Context, keyword string, limit int) ([]*model.Song, bool) {
	if !c.ready() {
		return nil, false
	}

	key := searchKey(keyword, limit)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("读取搜索缓存失败",
				logger.String("key", key),
				logger.ErrorField(err))
		}
		return nil, false
	}

	var songs []*model.Song
	if err := json.Unmarshal([]byte(val), &songs); err != nil {
		logger.Warn("解析搜索缓存失败",
			logger.String("key", key),
			logger.ErrorField(err))
		return nil, false
	}
	if len(songs) == 0 {
		return nil, false
	}
	return songs, true
}

// SetSearch 写入搜索结果缓存，空结果不缓存
func (c *MusicCache) SetSearch(ctx context.Context, keyword string, limit int, songs []*model.Song) {
	if !c.ready() || len(songs) == 0 {
		return
	}

	data, err := json.Marshal(songs)
	if err != nil {
		logger.Warn("序列化搜索结果失败", logger.ErrorField(err))
		return
	}

	key := searchKey(keyword, limit)
	if err := c.client.Set(ctx, key, data, searchTTL).Err(); err != nil {
		logger.Warn("写入搜索缓存失败",
			logger.String("key", key),
			logger.ErrorField(err))
	}
}

// searchKey 关键词做散列，避免特殊字符进键名
func searchKey(keyword string, limit int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d", keyword, limit)))
	return fmt.Sprintf(searchKeyFormat, hex.EncodeToString(sum[:]))
}
