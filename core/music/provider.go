package music

import (
	"context"
	"net/http"

	"TingFM/model"
)

// 上游接口统一伪装成浏览器请求
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Provider 音源接口
// 每个音源提供搜索和播放地址解析两种能力，实现内部不做降级，
// 失败如实返回错误，降级策略由 Resolver 统一处理。
type Provider interface {
	// Search 按关键词搜索歌曲
	Search(ctx context.Context, keyword string, limit int) ([]*model.Song, error)

	// ResolveURL 解析歌曲的直链播放地址
	ResolveURL(ctx context.Context, song *model.Song) (string, error)

	// FallbackURL 返回歌曲在音源站内的网页地址，用于直链拿不到时兜底
	FallbackURL(song *model.Song) string

	// Source 音源标识
	Source() model.MusicSource
}

// newAPIRequest 构造带伪装头的GET请求
func newAPIRequest(ctx context.Context, rawURL, referer string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	return req, nil
}
