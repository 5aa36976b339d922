package util

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	KVBackendMemory   = "memory"
	KVBackendRedis    = "redis"
	KVBackendDatabase = "database"
)

// 持久化键名
const (
	KeyAuthToken = "authToken"
	KeyUser      = "user"
	KeyUsers     = "hiring_tool_users"
	KeyTodos     = "todos"
)

// 文件上传相关常量
const (
	MimeImage = "image/"
)

const MaxAvatarSize = 2 << 20

const (
	MaxPasswordBytes       = 72
	PasswordTooLongMessage = "Password must be at most 72 bytes long"
)
