package ui

import (
	"github.com/desertthunder/riff/internal/cache"
	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/tasks"
)

// bundleLoadedMsg carries the cached bundle read during Init.
type bundleLoadedMsg struct {
	bundle *models.DataBundle
	err    error
}

// progressUpdateMsg carries one fetch progress event during a refresh.
type progressUpdateMsg tasks.ProgressUpdate

// refreshCompleteMsg carries the outcome of a refresh cycle.
type refreshCompleteMsg struct {
	result *cache.Result
}
