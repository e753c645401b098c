package cmd

type Config struct {
	HTTPPort           string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSslMode          string
	AmqpURL            string
	AmqpExchange       string
	JobServiceURL      string
	RoutingProviderURL string
	JWTSecret          string
}
