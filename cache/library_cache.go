package cache

import (
	"context"
	"encoding/json"
	"time"

	"MuseFM/logger"
	"MuseFM/model"

	"github.com/redis/go-redis/v9"
)

// libraryKey 音乐库列表在Redis中的键
const libraryKey = "musefm:library"

// libraryTTL 列表缓存的过期时间。缓存只是读路径的加速，
// JSON sidecar 始终是唯一权威数据源。
const libraryTTL = 5 * time.Minute

// GetLibrary 返回缓存的音乐库列表；缓存未命中或Redis未配置时返回 (nil, false)
func GetLibrary(ctx context.Context) ([]model.MusicRecord, bool) {
	if RedisClient == nil {
		return nil, false
	}

	data, err := RedisClient.Get(ctx, libraryKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("library cache read failed", logger.ErrorField(err))
		}
		return nil, false
	}

	var records []model.MusicRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("library cache corrupted, dropping", logger.ErrorField(err))
		RedisClient.Del(ctx, libraryKey)
		return nil, false
	}
	return records, true
}

// SetLibrary 写入音乐库列表缓存
func SetLibrary(ctx context.Context, records []model.MusicRecord) {
	if RedisClient == nil {
		return
	}

	data, err := json.Marshal(records)
	if err != nil {
		logger.Warn("library cache marshal failed", logger.ErrorField(err))
		return
	}
	if err := RedisClient.Set(ctx, libraryKey, data, libraryTTL).Err(); err != nil {
		logger.Warn("library cache write failed", logger.ErrorField(err))
	}
}

// InvalidateLibrary 在保存、删除或外部文件变更后使列表缓存失效
func InvalidateLibrary(ctx context.Context) {
	if RedisClient == nil {
		return
	}
	if err := RedisClient.Del(ctx, libraryKey).Err(); err != nil {
		logger.Warn("library cache invalidation failed", logger.ErrorField(err))
	}
}
