package server

import (
	"fmt"
	"strings"

	"TingFM/core/room"
	"TingFM/model"
)

// 所有指令回复都是面向聊天窗口的纯文本，这里集中放共用的渲染逻辑。
// 文案保持口语化，列表类输出用两个空格缩进。

// formatDuration 把秒渲染成 m:ss
func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// formatSearchResults 渲染搜索结果列表，序号从 1 起
func formatSearchResults(songs []*model.Song) string {
	lines := []string{"搜索结果:"}
	for i, song := range songs {
		lines = append(lines, fmt.Sprintf("  %d. %s - %s (%s) [%s]",
			i+1, song.Name, song.Artist, formatDuration(song.Duration), song.Source.DisplayName()))
	}
	lines = append(lines, "\n使用 /选歌 <序号> 添加到播放列表")
	return strings.Join(lines, "\n")
}

// formatPlaylist 渲染播放列表，当前歌曲用 ▶️ 标出
func formatPlaylist(songs []*model.Song, current int) string {
	if len(songs) == 0 {
		return "📋 播放列表为空"
	}

	lines := []string{"📋 播放列表:"}
	for i, song := range songs {
		prefix := fmt.Sprintf("%d. ", i+1)
		suffix := ""
		if i == current {
			prefix = "▶️ "
			suffix = " [正在播放]"
		}
		lines = append(lines, fmt.Sprintf("  %s%s - %s (%s) [%s]%s",
			prefix, song.Name, song.Artist, formatDuration(song.Duration), song.Source.DisplayName(), suffix))
	}
	return strings.Join(lines, "\n")
}

// formatRoomInfo 渲染房间详情
func formatRoomInfo(info room.RoomInfo) string {
	membersList := "无"
	if len(info.Members) > 0 {
		membersList = strings.Join(info.Members, ", ")
	}
	status := "已暂停"
	if info.Playing {
		status = "播放中"
	}

	lines := []string{
		"🏠 房间信息",
		fmt.Sprintf("房主: %s", info.OwnerName),
		fmt.Sprintf("成员: %s", membersList),
		fmt.Sprintf("歌曲数: %d", info.SongCount),
		fmt.Sprintf("状态: %s", status),
		fmt.Sprintf("模式: %s", info.Mode.DisplayName()),
	}
	if info.Current != nil {
		lines = append(lines, fmt.Sprintf("当前: %s", info.Current.Display()))
	}
	return strings.Join(lines, "\n")
}

// isDirectLink 判断是不是可以直接播放的音频直链，
// 区别于解析失败时兜底的音源网页地址
func isDirectLink(u string) bool {
	for _, ext := range []string{".mp3", ".m4a", ".flac", ".ogg"} {
		if strings.HasSuffix(u, ext) {
			return true
		}
	}
	return false
}

const helpText = `🎵 一起听音乐 - 帮助

【房间管理】
/创建房间 - 创建音乐房间
/加入房间 - 加入当前房间
/退出房间 - 退出房间
/关闭房间 - 关闭房间(仅房主)
/房间信息 - 查看房间详情

【歌曲操作】
/点歌 <歌名> - 搜索歌曲(QQ音乐/网易云)
/选歌 <序号> - 选择歌曲添加到列表
/播放列表 - 查看当前播放列表
/移除 <序号> - 移除指定歌曲
/清空列表 - 清空播放列表(仅房主)

【播放控制】
/播放 - 开始播放
/暂停 - 暂停播放
/下一首 - 播放下一首
/上一首 - 播放上一首
/切歌 <序号> - 切换到指定歌曲
/播放模式 [顺序/随机] - 设置播放模式

💡 提示: 音乐来源为QQ音乐和网易云音乐`
