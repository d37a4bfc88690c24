// Package tranzlate offers one interface over several translation engines.
//
// A Translator validates language pairs against its engine's language table,
// splits long text on word boundaries, and translates plain text, encoded
// bytes, files and HTML or XML markup.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ti-oluwa/tranzlate"
//	    "github.com/ti-oluwa/tranzlate/engine"
//	)
//
//	func main() {
//	    t, err := tranzlate.New("bing", tranzlate.WithEngineConfig(engine.Config{
//	        Bing: engine.BingConfig{Key: os.Getenv("TRANZLATE_BING_KEY")},
//	    }))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    out, err := t.TranslateText(context.Background(), "Good Morning!", "en", "yo")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(out) // Ẹ káàrọ̀!
//	}
package tranzlate
