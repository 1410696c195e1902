package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"TingFM/cache"
	"TingFM/config"
	"TingFM/core/music"
	"TingFM/logger"

	"github.com/spf13/cobra"
)

var (
	searchKeyword string
	searchCount   int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "曲库搜索命令行工具",
	Long:  `在命令行里搜索歌曲并解析播放地址，QQ音乐优先，网易云兜底`,
	Run: func(cmd *cobra.Command, args []string) {
		if searchKeyword == "" {
			fmt.Println("请输入要搜索的歌曲名称")
			os.Exit(1)
		}

		// 交互式工具只让真正的错误上屏
		logger.InitLogger(logger.Config{Level: logger.ErrorLevel})

		cfg := config.Load()
		if err := cache.ConnectRedis(cfg); err != nil {
			log.Printf("Redis不可用，跳过查询缓存: %v", err)
		}
		defer cache.CloseRedis()

		timeout := time.Duration(cfg.MusicTimeout) * time.Second
		qq := music.NewQQProvider(timeout)
		qq.SetBaseURL(cfg.QQAPIBase, cfg.QQVkeyBase)
		netease := music.NewNeteaseProvider(timeout)
		netease.SetBaseURL(cfg.NeteaseAPIBase)
		resolver := music.NewResolver(cache.NewMusicCache(), timeout, cfg.MusicRateLimit, qq, netease)

		ctx := context.Background()

		// 搜索歌曲
		fmt.Printf("正在搜索: %s\n", searchKeyword)
		songs := resolver.Search(ctx, searchKeyword, searchCount)
		if len(songs) == 0 {
			fmt.Println("未找到相关歌曲")
			return
		}

		// 显示搜索结果
		fmt.Printf("\n找到 %d 首歌曲:\n", len(songs))
		for i, song := range songs {
			fmt.Printf("%d. %s - %s [%s]\n", i+1, song.Name, song.Artist, song.Album)
		}

		// 获取用户选择
		var choice int
		fmt.Print("\n请选择要获取播放地址的歌曲编号: ")
		fmt.Scan(&choice)

		if choice < 1 || choice > len(songs) {
			fmt.Println("无效的选择")
			return
		}

		// 解析选中歌曲的播放地址
		selected := songs[choice-1]
		url := resolver.ResolveURL(ctx, selected)

		fmt.Printf("\n歌曲: %s\n", selected.Name)
		fmt.Printf("歌手: %s\n", selected.Artist)
		fmt.Printf("专辑: %s\n", selected.Album)
		fmt.Printf("音源: %s\n", selected.Source.DisplayName())
		fmt.Printf("播放地址: %s\n", url)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	// 添加命令行参数
	searchCmd.Flags().StringVarP(&searchKeyword, "keyword", "k", "", "要搜索的歌曲名称")
	searchCmd.Flags().IntVarP(&searchCount, "limit", "l", 5, "返回结果数量")
}
