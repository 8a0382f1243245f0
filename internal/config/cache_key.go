package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RateLimitKey returns the counter key for a client within a fixed window.
func (r *CacheKeyStruct) RateLimitKey(scope, clientIP string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, clientIP, window)
}

// CourseMaterialsChannel returns the Redis PubSub channel for new materials of a course
func (r *CacheKeyStruct) CourseMaterialsChannel(courseCode string) string {
	return fmt.Sprintf("course:%s:materials", courseCode)
}

var CacheKey = NewCacheKeyStruct()
