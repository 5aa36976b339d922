package configwatcher

import (
	"context"
	"fmt"
	"hiring_tool_backend/internal/config"
	"hiring_tool_backend/pkg/logger"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = time.Second

type ConfigReloader func(cfg *config.Config)

// Watch 监听配置文件变更，防抖后重新加载并回调，ctx 结束时退出
func Watch(ctx context.Context, configFile string, reloader ConfigReloader) error {
	if configFile == "" {
		return fmt.Errorf("no config file to watch")
	}

	absPath, err := filepath.Abs(configFile)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	// 监听目录，编辑器保存时常常是替换文件
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go loop(ctx, watcher, absPath, reloader)
	return nil
}

func loop(ctx context.Context, watcher *fsnotify.Watcher, absPath string, reloader ConfigReloader) {
	defer watcher.Close()

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// 防抖处理
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case <-timer.C:
			newCfg, err := config.LoadConfig(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
