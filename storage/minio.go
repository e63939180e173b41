package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"MuseFM/config"
	"MuseFM/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var minioClient *minio.Client

// InitMinio 初始化 MinIO 客户端并确保归档存储桶存在。
// 未配置MinIO时归档功能保持禁用，不是错误。
func InitMinio(cfg *config.Config) error {
	if !cfg.MinioEnabled() {
		logger.Info("MinIO not configured, archive disabled")
		return nil
	}

	logger.Info("正在连接 MinIO 服务器",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("成功创建存储桶", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	logger.Info("MinIO 客户端初始化成功")
	return nil
}

// Enabled reports whether archiving is active.
func Enabled() bool {
	return minioClient != nil
}

// ArchiveWAV uploads a saved WAV file under music/ in the archive bucket.
// Archiving is best-effort: a failure must never fail the library save, so
// callers only log the returned error.
func ArchiveWAV(ctx context.Context, cfg *config.Config, localPath, filename string) error {
	if minioClient == nil {
		return nil
	}

	objectName := path.Join("music", filename)
	info, err := minioClient.FPutObject(ctx, cfg.MinioBucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: "audio/wav",
	})
	if err != nil {
		return fmt.Errorf("归档上传失败 %s: %w", filename, err)
	}

	logger.Info("音频已归档",
		logger.String("object", objectName),
		logger.Int64("size", info.Size))
	return nil
}

// ListArchived 列出归档存储桶中 music/ 前缀下的所有对象名。
func ListArchived(ctx context.Context, cfg *config.Config) ([]string, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("MinIO 客户端未初始化")
	}

	var names []string
	for obj := range minioClient.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{
		Prefix:    "music/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("列出归档对象失败: %w", obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// RemoveArchived deletes the archived copy of a WAV, used when a record is
// deleted from the library. Missing objects are not an error.
func RemoveArchived(ctx context.Context, cfg *config.Config, filename string) error {
	if minioClient == nil {
		return nil
	}

	objectName := path.Join("music", filename)
	if err := minioClient.RemoveObject(ctx, cfg.MinioBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除归档失败 %s: %w", filename, err)
	}
	return nil
}
