package config

import (
	"path/filepath"

	"TingFM/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
)

// Watch 监听 .env 文件变化，变化后重新加载配置并回调。
// 返回停止函数。只有动态项（日志级别、搜索数量等）值得热更新，
// 端口之类的启动项改了也只在下次重启生效。
func Watch(envFile string, onReload func(*Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// 监听目录而不是文件本身，编辑器常用改名替换的方式写文件
	dir := filepath.Dir(envFile)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filepath.Base(envFile) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				// Overload 强制覆盖已有环境变量，普通 Load 不会
				if err := godotenv.Overload(envFile); err != nil {
					logger.Warn("重新加载配置文件失败",
						logger.String("file", envFile),
						logger.ErrorField(err))
					continue
				}
				logger.Info("配置文件已变更，重新加载", logger.String("file", envFile))
				onReload(Load())

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("配置监听出错", logger.ErrorField(err))

			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		watcher.Close()
	}
	return stop, nil
}
