package integrations_test

import (
	"fmt"

	"github.com/matzehuels/libman/pkg/integrations"
)

func ExampleNormalizeName() {
	fmt.Println(integrations.NormalizeName("Chart.js"))
	fmt.Println(integrations.NormalizeName("font-awesome"))
	// Output:
	// chartjs
	// fontawesome
}

func ExampleJoinURL() {
	fmt.Println(integrations.JoinURL("https://cdnjs.cloudflare.com/ajax/libs", "jquery", "3.7.1", "jquery.min.js"))
	// Output:
	// https://cdnjs.cloudflare.com/ajax/libs/jquery/3.7.1/jquery.min.js
}

func Example_errors() {
	fmt.Println("ErrNotFound:", integrations.ErrNotFound)
	fmt.Println("ErrNetwork:", integrations.ErrNetwork)
	// Output:
	// ErrNotFound: resource not found
	// ErrNetwork: network error
}
