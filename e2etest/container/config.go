package container

// ImageConfig contains all images and their respective tags
// needed for running e2e tests.
type ImageConfig struct {
	MongoRepository  string
	MongoVersion     string
	RabbitRepository string
	RabbitVersion    string
}

const (
	dockerMongoRepository  = "mongo"
	dockerMongoVersionTag  = "7.0.5"
	dockerRabbitRepository = "rabbitmq"
	dockerRabbitVersionTag = "3.13-alpine"
)

// NewImageConfig returns ImageConfig needed for running e2e test.
func NewImageConfig() ImageConfig {
	return ImageConfig{
		MongoRepository:  dockerMongoRepository,
		MongoVersion:     dockerMongoVersionTag,
		RabbitRepository: dockerRabbitRepository,
		RabbitVersion:    dockerRabbitVersionTag,
	}
}
