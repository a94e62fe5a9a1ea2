package utils

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/herdlink/livestock_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

// store instance, obj should be a pointer
func StoreRedis[T any](obj any, id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.SetRedisObject(key, &obj, GetCacheLifespan())
}

// retrieve instance by id, nil when not cached
func RetrieveRedis[T any](id int) (*T, error) {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	var obj T
	exists, err := config.GetRedisObject(key, &obj)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &obj, nil
}

// drop a cached instance (after updates/deletes)
func ClearRedisInstance[T any](id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.RemoveRedisKey(key)
}

// store list scoped by farm
func StoreRedisList[T any](obj any, farmId int) error {
	key := GetTypeName[T]() + "List:" + fmt.Sprint(farmId)
	return config.SetRedisObject(key, &obj, GetCacheLifespan())
}

// retrieve list scoped by farm, nil when not cached
func RetrieveRedisList[T any](farmId int) ([]*T, error) {
	key := GetTypeName[T]() + "List:" + fmt.Sprint(farmId)
	var list []*T
	exists, err := config.GetRedisObject(key, &list)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return list, nil
}

// drop a farm-scoped list cache (after writes)
func ClearRedisList[T any](farmId int) error {
	key := GetTypeName[T]() + "List:" + fmt.Sprint(farmId)
	return config.RemoveRedisKey(key)
}
