// Package integration provides end-to-end tests for the registry cache.
// These tests drive complete handle lifecycles (clone, fetch, branch
// resolution, install and recovery) against local registries built with
// go-git. Tests labelled "network" talk to the canonical registry and only
// run when MODCACHE_NETWORK_TESTS is set.
package integration
