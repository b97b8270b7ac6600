// Command gnls runs the GN language server over stdio, the transport every
// LSP client speaks. Grounded on the cmd/up/xpls serve command's
// stdio-transport shape (bufio-wrapped stdin/stdout, VSCodeObjectCodec),
// generalized to drive the real handler/dispatcher/server triad instead
// of that command's inline method switch.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/spf13/afero"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/gnlang/gnls/internal/lspserver/handler"
	"github.com/gnlang/gnls/internal/store"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging to stderr")
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	zl := logging.NewNopLogger()
	if *debug {
		zl = logging.NewLogrLogger(zap.New(zap.UseDevMode(true)))
	}

	st := store.New(afero.NewOsFs())
	h := handler.New(st, handler.WithLogger(zl))

	stream := jsonrpc2.NewBufferedStream(stdioConn{}, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(context.Background(), stream, h)

	log.Println("gnls is listening on stdio")
	<-conn.DisconnectNotify()
}

// stdioConn adapts stdin/stdout to an io.ReadWriteCloser, the shape
// jsonrpc2.NewBufferedStream requires.
type stdioConn struct{}

func (stdioConn) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioConn) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioConn) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

var (
	_ io.ReadWriteCloser = stdioConn{}
	_ jsonrpc2.Handler   = (*handler.Handler)(nil)
)
