package conf

import (
	"github.com/dotpath/conf/watcher"
)

// AutoReload watches the file at path and re-loads the configuration from
// its source whenever the file is written or created. Observers receive the
// per-variable change events produced by the reload followed by a reload
// notification. The returned watcher is already running; callers stop it
// when live reloading should end.
//
// A source must be configured. When path is empty and the source is a
// *FileSource, its own path is watched.
func (c *Configuration) AutoReload(path string, opts ...watcher.Option) (*watcher.Watcher, error) {
	src := c.Source()
	if src == nil {
		return nil, ErrNoSource
	}

	if path == "" {
		fs, ok := src.(*FileSource)
		if !ok {
			return nil, ErrNoSource
		}
		path = fs.Path()
	}

	w := watcher.New(opts...)
	if err := w.Watch(path); err != nil {
		return nil, err
	}

	w.OnChange(func(event watcher.Event) {
		if event.Op == watcher.OpRemove {
			return
		}
		if err := c.Load(); err != nil {
			return
		}
		c.notifier.NotifyReload(event.Path)
	})

	w.Start()
	return w, nil
}
