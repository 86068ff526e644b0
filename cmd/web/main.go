package main

import (
	"fmt"
	"io"
	"os"

	"dcmesh/pkg/decoder"
	"dcmesh/pkg/types"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Get port from environment or default to 3000
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Create Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// Enable CORS for a browser-based viewer
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	// Decode a container document posted as the request body
	r.POST("/api/decode", handleDecode)

	// Serve a static viewer build (if present)
	if _, err := os.Stat("web/build"); err == nil {
		r.Static("/static", "web/build/static")
		r.StaticFile("/", "web/build/index.html")
		r.NoRoute(func(c *gin.Context) {
			c.File("web/build/index.html")
		})
	} else {
		r.GET("/", func(c *gin.Context) {
			c.Data(200, "text/html", []byte(fallbackHTML))
		})
	}

	// Print URL and start server
	fmt.Printf("http://127.0.0.1:%s\n", port)
	r.Run(":" + port)
}

func handleDecode(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, types.Mesh{
			Diagnostics: []types.Diagnostic{{Code: "InvalidRequest", Message: "failed to read request body"}},
		})
		return
	}

	strict := c.Query("strict") == "1"
	swap64 := c.Query("swap64") == "1"
	legacyOp4 := c.Query("legacy_op4") == "1"

	mesh, err := decoder.Decode(body, types.Options{
		Strict:        strict,
		Swap64:        swap64,
		LegacyOp4Edge: legacyOp4,
	})
	if err != nil {
		c.JSON(400, types.Mesh{
			Diagnostics: []types.Diagnostic{{Code: "DecodeError", Message: err.Error()}},
		})
		return
	}

	c.JSON(200, mesh)
}

const fallbackHTML = `<!DOCTYPE html>
<html>
<head>
    <title>dcmesh - Container Mesh Decoder</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #3a7ca5; }
        textarea { width: 100%; height: 200px; font-family: monospace; }
        button { background: #3a7ca5; color: white; padding: 10px 20px; border: none; cursor: pointer; }
        pre { background: #f5f5f5; padding: 15px; overflow-x: auto; }
    </style>
</head>
<body>
    <h1>dcmesh</h1>
    <p>Paste a container XML document below:</p>
    <textarea id="input" placeholder="&lt;HPS version=&quot;1.0&quot;&gt;..."></textarea>
    <br><br>
    <button onclick="decodeDoc()">Decode</button>
    <h2>Result:</h2>
    <pre id="output">Results will appear here...</pre>

    <script>
        async function decodeDoc() {
            const input = document.getElementById('input').value;
            const output = document.getElementById('output');

            try {
                const response = await fetch('/api/decode', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/xml'},
                    body: input
                });
                const result = await response.json();
                output.textContent = JSON.stringify(result, null, 2);
            } catch (err) {
                output.textContent = 'Error: ' + err.message;
            }
        }
    </script>
</body>
</html>`
