package model

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MusicSource 音源标识
type MusicSource string

const (
	SourceQQ      MusicSource = "qq"
	SourceNetease MusicSource = "netease"
)

// DisplayName 返回音源的展示名称
func (s MusicSource) DisplayName() string {
	if s == SourceNetease {
		return "网易云"
	}
	return "QQ音乐"
}

// PlayMode 播放模式
type PlayMode string

const (
	PlayModeSequence PlayMode = "sequence"
	PlayModeRandom   PlayMode = "random"
)

// DisplayName 返回播放模式的展示名称
func (m PlayMode) DisplayName() string {
	if m == PlayModeRandom {
		return "随机播放"
	}
	return "顺序播放"
}

// ParsePlayMode 解析用户输入的播放模式，中英文都认。
// 认不出来时返回 false，调用方据此回显当前模式而不是报错。
func ParsePlayMode(s string) (PlayMode, bool) {
	switch s {
	case "顺序", "sequence":
		return PlayModeSequence, true
	case "随机", "random":
		return PlayModeRandom, true
	}
	return "", false
}

// Song 歌曲实体。元数据在搜索结果里就定下来，播放地址懒解析：
// 首次需要时才向音源请求，写入后不再覆盖，后续导航直接复用。
type Song struct {
	ID       string      // 音源内的歌曲标识，跨音源不唯一
	Name     string
	Artist   string      // 多位歌手用逗号拼接
	Album    string
	Duration int         // 秒
	Cover    string
	Source   MusicSource

	mu  sync.RWMutex
	url string
}

// NewSong 创建歌曲实体
func NewSong(id, name, artist, album string, duration int, cover string, source MusicSource) *Song {
	return &Song{
		ID:       id,
		Name:     name,
		Artist:   artist,
		Album:    album,
		Duration: duration,
		Cover:    cover,
		Source:   source,
	}
}

// URL 返回已解析的播放地址，未解析时为空串
func (s *Song) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// SetURL 写入播放地址。只在当前为空时生效，并发解析时先到先得，
// 返回值表示本次写入是否生效。
func (s *Song) SetURL(u string) bool {
	if u == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.url != "" {
		return false
	}
	s.url = u
	return true
}

// Display 歌曲的单行展示格式
func (s *Song) Display() string {
	return fmt.Sprintf("🎵 %s - %s [%s]", s.Name, s.Artist, s.Source.DisplayName())
}

// songJSON 是 Song 的序列化形态，url 受锁保护所以单独处理
type songJSON struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Artist   string      `json:"artist"`
	Album    string      `json:"album,omitempty"`
	Duration int         `json:"duration"`
	URL      string      `json:"url,omitempty"`
	Cover    string      `json:"cover,omitempty"`
	Source   MusicSource `json:"source"`
}

func (s *Song) MarshalJSON() ([]byte, error) {
	return json.Marshal(songJSON{
		ID:       s.ID,
		Name:     s.Name,
		Artist:   s.Artist,
		Album:    s.Album,
		Duration: s.Duration,
		URL:      s.URL(),
		Cover:    s.Cover,
		Source:   s.Source,
	})
}

func (s *Song) UnmarshalJSON(data []byte) error {
	var sj songJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}
	s.ID = sj.ID
	s.Name = sj.Name
	s.Artist = sj.Artist
	s.Album = sj.Album
	s.Duration = sj.Duration
	s.Cover = sj.Cover
	s.Source = sj.Source
	s.url = sj.URL
	return nil
}
