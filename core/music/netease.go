package music

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TingFM/model"
)

const (
	neteaseReferer = "https://music.163.com"
	// 匿名cookie，没有它播放地址接口会拒绝请求
	neteaseCookie = "_ntes_nnid=7eced20b9f8d49c22d5da8e2f9ca784b; _ntes_nuid=7eced20b9f8d49c22d5da8e2f9ca784b"
)

// NeteaseProvider 网易云音乐音源
type NeteaseProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewNeteaseProvider 创建网易云音源
func NewNeteaseProvider(timeout time.Duration) *NeteaseProvider {
	return &NeteaseProvider{
		baseURL: "https://music.163.com",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBaseURL 覆盖接口域名，测试时指向本地mock
func (p *NeteaseProvider) SetBaseURL(base string) {
	if base != "" {
		p.baseURL = base
	}
}

// Source 音源标识
func (p *NeteaseProvider) Source() model.MusicSource {
	return model.SourceNetease
}

// Search 搜索歌曲
func (p *NeteaseProvider) Search(ctx context.Context, keyword string, limit int) ([]*model.Song, error) {
	params := url.Values{}
	params.Set("s", keyword)
	params.Set("type", "1")
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("offset", "0")

	reqURL := fmt.Sprintf("%s/api/search/get?%s", p.baseURL, params.Encode())
	req, err := newAPIRequest(ctx, reqURL, neteaseReferer)
	if err != nil {
		return nil, fmt.Errorf("创建搜索请求失败: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("搜索请求失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Code   int `json:"code"`
		Result struct {
			Songs []struct {
				ID      int64  `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Name   string `json:"name"`
					PicURL string `json:"picUrl"`
				} `json:"album"`
				Duration int `json:"duration"` // 毫秒
			} `json:"songs"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析搜索响应失败: %w", err)
	}
	if result.Code != 200 {
		return nil, fmt.Errorf("搜索接口返回错误码: %d", result.Code)
	}

	songs := make([]*model.Song, 0, len(result.Result.Songs))
	for _, item := range result.Result.Songs {
		names := make([]string, 0, len(item.Artists))
		for _, a := range item.Artists {
			names = append(names, a.Name)
		}

		songs = append(songs, model.NewSong(
			fmt.Sprintf("%d", item.ID),
			item.Name,
			strings.Join(names, ", "),
			item.Album.Name,
			item.Duration/1000,
			item.Album.PicURL,
			model.SourceNetease,
		))
	}
	return songs, nil
}

// ResolveURL 获取直链播放地址
func (p *NeteaseProvider) ResolveURL(ctx context.Context, song *model.Song) (string, error) {
	params := url.Values{}
	params.Set("ids", fmt.Sprintf("[%s]", song.ID))
	params.Set("br", "320000")

	reqURL := fmt.Sprintf("%s/api/song/enhance/player/url?%s", p.baseURL, params.Encode())
	req, err := newAPIRequest(ctx, reqURL, neteaseReferer)
	if err != nil {
		return "", fmt.Errorf("创建播放地址请求失败: %w", err)
	}
	req.Header.Set("Cookie", neteaseCookie)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("播放地址请求失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Code int `json:"code"`
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("解析播放地址响应失败: %w", err)
	}

	if result.Code != 200 {
		return "", fmt.Errorf("播放地址接口返回错误码: %d", result.Code)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("歌曲无直链，可能是版权受限")
	}
	return result.Data[0].URL, nil
}

// FallbackURL 歌曲详情页地址
func (p *NeteaseProvider) FallbackURL(song *model.Song) string {
	return fmt.Sprintf("https://music.163.com/song?id=%s", song.ID)
}
