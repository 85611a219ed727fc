// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package cache provides a small generic cache with a soft size limit.
//
// When the cache grows past its limit the least recently used quarter of
// the entries is evicted. rendercore uses it to keep decoded shader
// binaries so pipelines built from the same file share one read.
//
//	c := cache.New[string, []uint32](16)
//	words, err := c.GetOrLoad(path, load)
//
// Cache is safe for concurrent use and must not be copied.
package cache
