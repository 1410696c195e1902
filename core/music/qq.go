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
	qqReferer = "https://y.qq.com"
	// vkey接口要求的固定访客参数
	qqGUID     = "1234567890"
	qqPlatform = "20"
)

// QQProvider QQ音乐音源
type QQProvider struct {
	searchBase string // 搜索接口域名
	vkeyBase   string // 播放地址接口域名
	httpClient *http.Client
}

// NewQQProvider 创建QQ音乐音源
func NewQQProvider(timeout time.Duration) *QQProvider {
	return &QQProvider{
		searchBase: "https://c.y.qq.com",
		vkeyBase:   "https://u.y.qq.com",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBaseURL 覆盖接口域名，测试时指向本地mock
func (p *QQProvider) SetBaseURL(searchBase, vkeyBase string) {
	if searchBase != "" {
		p.searchBase = searchBase
	}
	if vkeyBase != "" {
		p.vkeyBase = vkeyBase
	}
}

// Source 音源标识
func (p *QQProvider) Source() model.MusicSource {
	return model.SourceQQ
}

// Search 搜索歌曲
func (p *QQProvider) Search(ctx context.Context, keyword string, limit int) ([]*model.Song, error) {
	params := url.Values{}
	params.Set("w", keyword)
	params.Set("p", "1")
	params.Set("n", fmt.Sprintf("%d", limit))
	params.Set("format", "json")
	params.Set("aggr", "1")
	params.Set("lossless", "0")
	params.Set("cr", "1")
	params.Set("new_json", "1")

	reqURL := fmt.Sprintf("%s/soso/fcgi-bin/client_search_cp?%s", p.searchBase, params.Encode())
	req, err := newAPIRequest(ctx, reqURL, qqReferer)
	if err != nil {
		return nil, fmt.Errorf("创建搜索请求失败: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("搜索请求失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Code int `json:"code"`
		Data struct {
			Song struct {
				List []struct {
					Mid      string `json:"mid"`
					Name     string `json:"name"`
					Interval int    `json:"interval"`
					Singer   []struct {
						Name string `json:"name"`
					} `json:"singer"`
					Album struct {
						Mid  string `json:"mid"`
						Name string `json:"name"`
					} `json:"album"`
				} `json:"list"`
			} `json:"song"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析搜索响应失败: %w", err)
	}
	if result.Code != 0 {
		return nil, fmt.Errorf("搜索接口返回错误码: %d", result.Code)
	}

	songs := make([]*model.Song, 0, len(result.Data.Song.List))
	for _, item := range result.Data.Song.List {
		names := make([]string, 0, len(item.Singer))
		for _, s := range item.Singer {
			if s.Name != "" {
				names = append(names, s.Name)
			}
		}
		artist := strings.Join(names, ", ")
		if artist == "" {
			artist = "未知歌手"
		}

		songs = append(songs, model.NewSong(
			item.Mid,
			item.Name,
			artist,
			item.Album.Name,
			item.Interval,
			qqAlbumCover(item.Album.Mid),
			model.SourceQQ,
		))
	}
	return songs, nil
}

// qqAlbumCover 按专辑mid拼出封面地址
func qqAlbumCover(albumMid string) string {
	if albumMid == "" {
		return ""
	}
	return fmt.Sprintf("https://y.qq.com/music/photo_new/T002R300x300M000%s.jpg", albumMid)
}

// ResolveURL 通过vkey接口换取直链播放地址
func (p *QQProvider) ResolveURL(ctx context.Context, song *model.Song) (string, error) {
	payload := map[string]interface{}{
		"req": map[string]interface{}{
			"module": "CDN.SrfCdnDispatchServer",
			"method": "GetCdnDispatch",
			"param": map[string]interface{}{
				"guid":     qqGUID,
				"calltype": 0,
				"userip":   "",
			},
		},
		"req_0": map[string]interface{}{
			"module": "vkey.GetVkeyServer",
			"method": "CgiGetVkey",
			"param": map[string]interface{}{
				"guid":      qqGUID,
				"songmid":   []string{song.ID},
				"songtype":  []int{0},
				"uin":       "0",
				"loginflag": 1,
				"platform":  qqPlatform,
			},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("构造vkey请求失败: %w", err)
	}

	params := url.Values{}
	params.Set("data", string(data))
	reqURL := fmt.Sprintf("%s/cgi-bin/musicu.fcg?%s", p.vkeyBase, params.Encode())

	req, err := newAPIRequest(ctx, reqURL, qqReferer)
	if err != nil {
		return "", fmt.Errorf("创建vkey请求失败: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vkey请求失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Req0 struct {
			Code int `json:"code"`
			Data struct {
				Sip        []string `json:"sip"`
				MidURLInfo []struct {
					Purl string `json:"purl"`
				} `json:"midurlinfo"`
			} `json:"data"`
		} `json:"req_0"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("解析vkey响应失败: %w", err)
	}

	if result.Req0.Code != 0 {
		return "", fmt.Errorf("vkey接口返回错误码: %d", result.Req0.Code)
	}
	info := result.Req0.Data.MidURLInfo
	if len(info) == 0 || info[0].Purl == "" || len(result.Req0.Data.Sip) == 0 {
		return "", fmt.Errorf("歌曲无直链，可能是付费或版权受限")
	}
	return result.Req0.Data.Sip[0] + info[0].Purl, nil
}

// FallbackURL 歌曲详情页地址
func (p *QQProvider) FallbackURL(song *model.Song) string {
	return fmt.Sprintf("https://y.qq.com/n/ryqq/songDetail/%s", song.ID)
}
