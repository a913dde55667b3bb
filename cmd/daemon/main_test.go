// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/ManuGH/pendel/internal/config"
	xglog "github.com/ManuGH/pendel/internal/log"
)

func TestBuildCacheMemoryDefault(t *testing.T) {
	cfg := &config.AppConfig{}

	c, closeCache := buildCache(cfg, xglog.WithComponent("test"))
	defer closeCache()

	c.Set(context.Background(), "k", []byte("v"), time.Minute)
	got, ok := c.Get(context.Background(), "k")
	if !ok || string(got) != "v" {
		t.Fatalf("memory cache round trip failed: ok=%v got=%q", ok, got)
	}
}

func TestBuildCacheRedis(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := &config.AppConfig{}
	cfg.Cache.RedisAddr = srv.Addr()

	c, closeCache := buildCache(cfg, xglog.WithComponent("test"))
	defer closeCache()

	c.Set(context.Background(), "k", []byte("v"), time.Minute)
	got, ok := c.Get(context.Background(), "k")
	if !ok || string(got) != "v" {
		t.Fatalf("redis cache round trip failed: ok=%v got=%q", ok, got)
	}
}

func TestBuildCacheRedisUnreachableFallsBack(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Cache.RedisAddr = "127.0.0.1:1" // nothing listens here

	c, closeCache := buildCache(cfg, xglog.WithComponent("test"))
	defer closeCache()

	// Fallback must behave like the memory cache, not error out.
	c.Set(context.Background(), "k", []byte("v"), time.Minute)
	if _, ok := c.Get(context.Background(), "k"); !ok {
		t.Fatal("fallback cache did not store the value")
	}
}
