package matchmaker

// Version is overwritten at build time with -ldflags.
var Version = "devel"
