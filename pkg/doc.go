// Package pkg holds the libraries behind libman, a client-side library
// manager for web projects.
//
// libman reads libman.json, resolves each declared library against a
// provider catalog (cdnjs, unpkg, jsDelivr or the local file system) and
// copies the selected files into the project. Restores are idempotent:
// files already in place are left alone.
//
// # Layout
//
//   - [manifest]: libman.json parsing, restore, clean and mutation
//   - [providers]: the provider implementations and their shared plumbing
//   - [library]: the data model and the Provider, Catalog and Host interfaces
//   - [cache]: the download cache service and key/value backends
//   - [integrations]: HTTP clients for cdnjs and the npm registry and CDNs
//   - [host]: the disk-backed Host used by the CLI
//   - [completion]: non-blocking completion sessions for editors
//   - [fileset], [naming], [semver]: file filters, library ids and versions
//   - [errors]: the LIB error codes
//
// # Quick Start
//
//	h, _ := host.New(".", cacheDir, logger, nil)
//	service := cache.NewService(integrations.NewClient(nil, "", 0, nil))
//	deps := providers.NewDependencies(h,
//	    cdnjs.New(h, service, cdnjsapi.NewClient(nil, 0, "", "")))
//
//	m, err := manifest.FromFile("libman.json", deps)
//	if err != nil {
//	    return err
//	}
//	for _, r := range m.Restore(ctx) {
//	    if !r.Success() {
//	        fmt.Println(r.Errors)
//	    }
//	}
package pkg
