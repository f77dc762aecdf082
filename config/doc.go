// Package config loads service settings from defaults, an optional YAML
// file and environment variables.
//
// Recognised environment variables:
//
//	NEWSROOM_CONFIG        path of the YAML file
//	NEWSAPI_KEY            upstream news API credential
//	KAFKA_BROKER           comma-separated broker list (KAFKA_BOOTSTRAP_SERVERS as fallback)
//	TOPIC_NEWS_RAW         stream topic
//	CLOUDINARY_CLOUD_NAME  image CDN cloud name
//	DB_URL                 document store URL; a postgres:// URL selects postgres
//	MONGO_DB_NAME          document store database
//	MONGO_COLLECTION       document store collection
//	HF_TOKEN               model API token; selects the hf backend when none is set
//	NEWSROOM_AI_BACKEND    hf, openai or keyword
//	NEWSROOM_STORE         memory, badger or redis
//	REDIS_ADDR             redis record store address
//	REDIS_PASSWORD         redis record store password
//	PORT                   HTTP port
package config
