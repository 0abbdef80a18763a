package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"metadata-platform/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}
	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "version":
		fmt.Println("metadata-platform cli 0.1.0")
	case "config":
		runConfig()
	case "server":
		if len(args) > 0 && args[0] == "start" {
			runServerStart()
		} else {
			fmt.Fprintf(os.Stderr, "Usage: mde server start\n")
			os.Exit(1)
		}
	case "list":
		runList(args)
	case "get":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: mde get <id>\n")
			os.Exit(1)
		}
		runGet(args[0])
	case "create":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: mde create <record.json>\n")
			os.Exit(1)
		}
		runCreate(args[0])
	case "delete":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: mde delete <id>\n")
			os.Exit(1)
		}
		runDelete(args[0])
	case "export":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: mde export <id> [datacite|iso19115|dif]\n")
			os.Exit(1)
		}
		scheme := ""
		if len(args) > 1 {
			scheme = args[1]
		}
		runExport(args[0], scheme)
	case "import":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: mde import <file.xml>\n")
			os.Exit(1)
		}
		runImport(args[0])
	case "vocab":
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		runVocab(name)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: mde <command> [args]")
	fmt.Println("  version              - 显示版本")
	fmt.Println("  config               - 显示配置概要")
	fmt.Println("  server start         - 启动 API 服务（go run ./cmd/api）")
	fmt.Println("  list [search] [n]    - 列出记录（可选全文检索与条数）")
	fmt.Println("  get <id>             - 显示完整记录")
	fmt.Println("  create <record.json> - 从 JSON 文件创建记录")
	fmt.Println("  delete <id>          - 删除记录")
	fmt.Println("  export <id> [scheme] - 导出 XML；省略 scheme 时下载三标准 zip")
	fmt.Println("  import <file.xml>    - 上传 DataCite XML，输出解析后的记录")
	fmt.Println("  vocab [name]         - 列出受控词表（不带 name 时列出全部词表名）")
}

func runConfig() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if cfg != nil {
		fmt.Printf("api.port=%d\n", cfg.API.Port)
		fmt.Printf("api.host=%s\n", cfg.API.Host)
		fmt.Printf("storage.resource.type=%s\n", cfg.Storage.Resource.Type)
		fmt.Printf("storage.cache.type=%s\n", cfg.Storage.Cache.Type)
	}
}

func runServerStart() {
	c := exec.Command("go", "run", "./cmd/api")
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Dir = "."
	if err := c.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server start: %v\n", err)
		os.Exit(1)
	}
}

func runList(args []string) {
	search := ""
	limit := 0
	if len(args) > 0 {
		search = args[0]
	}
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			limit = n
		}
	}
	out, err := listResources(search, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "列出记录失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runGet(id string) {
	out, err := getResource(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取记录失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runCreate(path string) {
	body, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取 %s 失败: %v\n", path, err)
		os.Exit(1)
	}
	out, err := createResource(body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建记录失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runDelete(id string) {
	if err := deleteResource(id); err != nil {
		fmt.Fprintf(os.Stderr, "删除失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("deleted", id)
}

func runExport(id, scheme string) {
	data, filename, err := exportResource(id, scheme)
	if err != nil {
		fmt.Fprintf(os.Stderr, "导出失败: %v\n", err)
		os.Exit(1)
	}
	if filename == "" {
		filename = id + ".xml"
		if scheme == "" {
			filename = id + ".zip"
		}
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "写入 %s 失败: %v\n", filename, err)
		os.Exit(1)
	}
	fmt.Println(filename)
}

func runImport(path string) {
	out, err := importResource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "导入失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runVocab(name string) {
	out, err := getVocab(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取词表失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}
