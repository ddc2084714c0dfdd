package config

import (
	"os"
	"sync"
)

// StorageConfig points at the S3-compatible bucket that receives published job criteria.
type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	CriteriaObject string
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		storageConfig = &StorageConfig{
			Endpoint:       os.Getenv("STORAGE_ENDPOINT"),
			AccessKey:      os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:      os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:         envDefault("STORAGE_BUCKET", "job-criteria"),
			UseSSL:         envBool("STORAGE_USE_SSL", true),
			CriteriaObject: envDefault("STORAGE_CRITERIA_OBJECT", "job_criteria.json"),
		}
	})
	return storageConfig
}
