package config

import "strings"

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeS3Config(raw rawS3Config) S3Config {
	return S3Config{
		Bucket:          strings.TrimSpace(raw.Bucket),
		Region:          strings.TrimSpace(raw.Region),
		Endpoint:        strings.TrimRight(strings.TrimSpace(raw.Endpoint), "/"),
		AccessKeyID:     strings.TrimSpace(raw.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(raw.SecretAccessKey),
		PathStyle:       raw.PathStyle,
		PublicURL:       strings.TrimRight(strings.TrimSpace(raw.PublicURL), "/"),
	}
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	switch trimmed {
	case "", "dev", "development":
		return defaultEnv
	case "prod", "production":
		return "production"
	}
	return trimmed
}

func copyStringMap(input map[string]string) map[string]string {
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
