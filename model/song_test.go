package model

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

func TestSetURLOnce(t *testing.T) {
	s := NewSong("1", "晴天", "周杰伦", "叶惠美", 269, "", SourceQQ)

	if got := s.URL(); got != "" {
		t.Fatalf("新歌曲不应有播放地址，得到 %q", got)
	}
	if !s.SetURL("http://a.example.com/1.mp3") {
		t.Fatal("首次写入应该生效")
	}
	if s.SetURL("http://b.example.com/1.mp3") {
		t.Fatal("二次写入不应生效")
	}
	if got := s.URL(); got != "http://a.example.com/1.mp3" {
		t.Fatalf("播放地址被覆盖了: %q", got)
	}
}

func TestSetURLRejectsEmpty(t *testing.T) {
	s := NewSong("1", "晴天", "周杰伦", "", 269, "", SourceQQ)

	if s.SetURL("") {
		t.Fatal("空地址不应生效")
	}
	if !s.SetURL("http://a.example.com/1.mp3") {
		t.Fatal("空写入之后正常写入应该生效")
	}
}

func TestConcurrentSetURLSingleWinner(t *testing.T) {
	s := NewSong("1", "晴天", "周杰伦", "", 269, "", SourceQQ)

	const n = 16
	var wg sync.WaitGroup
	wins := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := fmt.Sprintf("http://cdn.example.com/%d.mp3", i)
			if s.SetURL(u) {
				wins <- u
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for u := range wins {
		winners = append(winners, u)
	}
	if len(winners) != 1 {
		t.Fatalf("应该只有一个写入者胜出，实际 %d 个", len(winners))
	}
	if got := s.URL(); got != winners[0] {
		t.Fatalf("读到的地址 %q 不是胜出者写入的 %q", got, winners[0])
	}
}

func TestSongJSONCarriesURL(t *testing.T) {
	s := NewSong("123", "海阔天空", "Beyond", "乐与怒", 326, "http://p1.example.com/c.jpg", SourceNetease)
	s.SetURL("http://m7.example.com/123.mp3")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}

	var back Song
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	if back.ID != "123" || back.Name != "海阔天空" || back.Duration != 326 {
		t.Fatalf("元数据丢失: %+v", &back)
	}
	if back.Source != SourceNetease {
		t.Fatalf("音源标识丢失: %q", back.Source)
	}
	if got := back.URL(); got != "http://m7.example.com/123.mp3" {
		t.Fatalf("播放地址没有跟着序列化走: %q", got)
	}
}

func TestParsePlayMode(t *testing.T) {
	cases := []struct {
		in   string
		want PlayMode
		ok   bool
	}{
		{"顺序", PlayModeSequence, true},
		{"sequence", PlayModeSequence, true},
		{"随机", PlayModeRandom, true},
		{"random", PlayModeRandom, true},
		{"", "", false},
		{"单曲循环", "", false},
	}
	for _, c := range cases {
		got, ok := ParsePlayMode(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParsePlayMode(%q) = (%q, %v)，期望 (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestDisplay(t *testing.T) {
	s := NewSong("1", "晴天", "周杰伦", "叶惠美", 269, "", SourceQQ)
	if got := s.Display(); got != "🎵 晴天 - 周杰伦 [QQ音乐]" {
		t.Fatalf("展示格式不对: %q", got)
	}

	n := NewSong("2", "海阔天空", "Beyond", "", 326, "", SourceNetease)
	if got := n.Display(); got != "🎵 海阔天空 - Beyond [网易云]" {
		t.Fatalf("展示格式不对: %q", got)
	}
}
