// Package providers holds the machinery shared by every library provider
// and the registry the engine looks providers up in.
//
// A provider turns a manifest entry into a goal state (absolute destination
// path to source) and installs it. CDN providers (cdnjs, unpkg, jsdelivr)
// share [Base], which resolves the library through the provider's catalog,
// expands the entry's file filters with [fileset.Expand], plans cache paths
// of the form {cacheDir}/{provider}/{name}/{version}/{file}, downloads
// missing cache files, and copies them into place. The filesystem provider
// reuses [PlanFiles] and [WriteGoalState] with disk and URL sources.
//
// [Dependencies] wires providers to a [library.Host] and is what the
// manifest engine and the CLI receive.
//
// [fileset.Expand]: github.com/matzehuels/libman/pkg/fileset.Expand
// [library.Host]: github.com/matzehuels/libman/pkg/library.Host
package providers
