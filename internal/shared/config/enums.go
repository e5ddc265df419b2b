//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package config

// AppEnv represents the application environment
// ENUM(local,production,development,testing)
type AppEnv string

// StoreDriver selects the state document backend
// ENUM(mongo,firestore,file,memory)
type StoreDriver string
