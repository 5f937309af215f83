package common

// PackageName is used as the metrics namespace and the default service tag.
const PackageName = "tokenbound_service_registry"

// Version is set at build time via -ldflags.
var Version = "dev"
