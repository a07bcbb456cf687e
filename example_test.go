package ngfftools_test

import (
	"context"
	"fmt"
	"log"

	ngfftools "github.com/lubianat/ome-ngff-tools"
	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
)

func ExampleNew() {
	client, err := ngfftools.New(ngfftools.WithEmbedded(true))
	if err != nil {
		log.Fatal(err)
	}

	m, err := client.Matrix(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(m.Versions)
	// Output: [0.6.dev1 0.5 0.4]
}

func ExampleClient_OnMatrixBuilt() {
	client, err := ngfftools.New(ngfftools.WithDataDir("/srv/ngff-tools"))
	if err != nil {
		log.Fatal(err)
	}

	client.OnMatrixBuilt(func(m *matrix.Matrix) {
		fmt.Printf("%d versions, %d tools\n", m.Stats.Versions, m.Stats.Tools)
	})
	if _, err := client.Matrix(context.Background()); err != nil {
		log.Fatal(err)
	}
}
