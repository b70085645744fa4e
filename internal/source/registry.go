package source

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Registry 源配置的不可变快照持有者。
// Reload 整体换新快照，读方顺序无感；加载失败保留旧快照继续服务。
type Registry struct {
	path string

	mu   sync.RWMutex
	byID map[string]*Profile
	ids  []string
}

type registryFile struct {
	Sources []*Profile `yaml:"sources"`
}

// Load 从 YAML 文件装载注册表
func Load(path string) (*Registry, error) {
	r := &Registry{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload 重新读取配置文件并整体替换快照
func (r *Registry) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("registry: read %s: %w", r.path, err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("registry: parse %s: %w", r.path, err)
	}
	if len(file.Sources) == 0 {
		return fmt.Errorf("registry: %s defines no sources", r.path)
	}

	byID := make(map[string]*Profile, len(file.Sources))
	ids := make([]string, 0, len(file.Sources))
	for _, p := range file.Sources {
		if err := p.init(); err != nil {
			return err
		}
		if _, dup := byID[p.ID]; dup {
			return fmt.Errorf("registry: duplicate source id %q", p.ID)
		}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	r.mu.Lock()
	r.byID = byID
	r.ids = ids
	r.mu.Unlock()
	return nil
}

// Get 按 id 查源配置，未注册返回 nil
func (r *Registry) Get(id string) *Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// IDs 按配置文件顺序返回全部源 id
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Profiles 按配置文件顺序返回全部源配置
func (r *Registry) Profiles() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Profile, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id])
	}
	return out
}

const watchDebounce = 500 * time.Millisecond

// Watch 监听配置文件变化并热加载。编辑器保存常触发多个事件，
// 做 500ms 去抖；rename/remove 后重新挂监听（很多编辑器原子替换文件）。
func (r *Registry) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("registry: new watcher: %w", err)
	}
	if err := watcher.Add(r.path); err != nil {
		watcher.Close()
		return fmt.Errorf("registry: watch %s: %w", r.path, err)
	}

	go func() {
		var debounce *time.Timer
		reload := func() {
			if err := r.Reload(); err != nil {
				slog.Error("registry reload failed, keeping previous snapshot", "path", r.path, "err", err)
				return
			}
			slog.Info("registry reloaded", "path", r.path, "sources", len(r.IDs()))
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Chmod == fsnotify.Chmod {
					continue
				}
				if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
					// 原子替换后 inode 变了，稍等新文件落地再重新监听
					time.Sleep(100 * time.Millisecond)
					if err := watcher.Add(r.path); err != nil {
						slog.Warn("re-watch sources file", "path", r.path, "err", err)
					}
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("registry watcher error", "err", err)
			}
		}
	}()
	return nil
}
