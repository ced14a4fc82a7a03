package redis

import "fmt"

// Key prefix for all locally stored data
const keyPrefix = "cpmtool"

// userKey returns the Redis key for a User
func userKey(id string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// accessKeyKey returns the Redis key for an AccessKey
func accessKeyKey(code string) string {
	return fmt.Sprintf("%s:key:%s", keyPrefix, code)
}

// accessKeySetKey returns the Redis key for the SET of issued key codes
func accessKeySetKey() string {
	return fmt.Sprintf("%s:idx:keys", keyPrefix)
}

// operationLogKey returns the Redis key for the operation log LIST
func operationLogKey() string {
	return fmt.Sprintf("%s:oplog", keyPrefix)
}
