package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/thisisjab/myn/entity"
	"github.com/thisisjab/myn/lang/token"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	luajson "layeh.com/gopher-json"
)

const entryPoint = "check_tokens"

type LuaRuleConfig struct {
	Name       string `yaml:"-"`
	ScriptPath string `yaml:"script_path"`
	Script     string `yaml:"script"`
}

// LuaRule is a lint rule implemented by a Lua script.
// The script MUST define a function named `check_tokens` which takes the token list as parameter.
// Each token is a table with `lexeme`, `kind`, `keyword` (nil unless kind is "keyword"), `line`
// and `column` fields.
// `check_tokens` returns nil or a list of tables with:
// 1. message as a string
// 2. line and column as numbers
// 3. severity as one of info, warning or error (optional, defaults to warning)
// Note that scripts can use the JSON helper through `local json = require("json")`
type LuaRule struct {
	cfg   LuaRuleConfig
	proto *lua.FunctionProto
	pool  *sync.Pool
}

func NewLuaRule(cfg LuaRuleConfig) (*LuaRule, error) {
	if cfg.Name == "" {
		return nil, errors.New("lua rule needs a name")
	}

	script := cfg.Script
	chunkName := cfg.Name
	if cfg.ScriptPath != "" {
		content, err := os.ReadFile(cfg.ScriptPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read lua script: %w", err)
		}
		script = string(content)
		chunkName = cfg.ScriptPath
	}

	if strings.TrimSpace(script) == "" {
		return nil, errors.New("lua rule has no script")
	}

	// Compile once and share the bytecode between all pooled VMs
	chunk, err := parse.Parse(strings.NewReader(script), chunkName)
	if err != nil {
		return nil, fmt.Errorf("cannot parse lua script: %w", err)
	}

	proto, err := lua.Compile(chunk, chunkName)
	if err != nil {
		return nil, fmt.Errorf("cannot compile lua script: %w", err)
	}

	r := &LuaRule{cfg: cfg, proto: proto}
	r.pool = &sync.Pool{
		New: func() any {
			L, err := r.newState()
			if err != nil {
				return err
			}
			return L
		},
	}

	// Load one VM up front so a broken script fails here and not on the first check.
	L, err := r.get()
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(L)

	if _, ok := L.GetGlobal(entryPoint).(*lua.LFunction); !ok {
		return nil, fmt.Errorf("lua script does not define `%s`", entryPoint)
	}

	return r, nil
}

func (r *LuaRule) newState() (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // Don't load anything by default
	})

	// Manually open only the safe libraries
	// We skip 'os' and 'io' to prevent system commands/file access
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},  // Allows 'require'
		{lua.BaseLibName, lua.OpenBase},     // Allows 'print', 'pairs', etc.
		{lua.TabLibName, lua.OpenTable},     // Allows 'table.insert', etc.
		{lua.StringLibName, lua.OpenString}, // Allows string manipulation
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// This allows the script to do: local json = require("json")
	luajson.Preload(L)

	L.Push(L.NewFunctionFromProto(r.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("lua script error: %w", err)
	}

	return L, nil
}

func (r *LuaRule) get() (*lua.LState, error) {
	switch v := r.pool.Get().(type) {
	case *lua.LState:
		return v, nil
	case error:
		return nil, v
	default:
		return nil, fmt.Errorf("unexpected pooled value %T", v)
	}
}

func (r *LuaRule) Name() string {
	return r.cfg.Name
}

func (r *LuaRule) Check(tokens []token.Token) ([]entity.Diagnostic, error) {
	L, err := r.get()
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(L)

	err = L.CallByParam(lua.P{
		Fn:      L.GetGlobal(entryPoint),
		NRet:    1,
		Protect: true,
	}, tokensToTable(L, tokens))
	if err != nil {
		return nil, fmt.Errorf("lua script error: %w", err)
	}

	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		return tableToDiagnostics(r.cfg.Name, v)
	default:
		return nil, fmt.Errorf("`%s` must return a table or nil, got %s", entryPoint, ret.Type())
	}
}

func tokensToTable(L *lua.LState, tokens []token.Token) *lua.LTable {
	list := L.CreateTable(len(tokens), 0)

	for _, tok := range tokens {
		t := L.CreateTable(0, 5)
		t.RawSetString("lexeme", lua.LString(tok.Lexeme))
		t.RawSetString("kind", lua.LString(tok.Kind.String()))
		if tok.Kind == token.Keyword {
			t.RawSetString("keyword", lua.LString(tok.Keyword.String()))
		}
		t.RawSetString("line", lua.LNumber(tok.Pos.Line))
		t.RawSetString("column", lua.LNumber(tok.Pos.Column))

		list.Append(t)
	}

	return list
}

func tableToDiagnostics(rule string, list *lua.LTable) ([]entity.Diagnostic, error) {
	var res []entity.Diagnostic
	var err error

	list.ForEach(func(_, value lua.LValue) {
		if err != nil {
			return
		}

		t, ok := value.(*lua.LTable)
		if !ok {
			err = fmt.Errorf("diagnostic must be a table, got %s", value.Type())
			return
		}

		res = append(res, entity.Diagnostic{
			Rule:     rule,
			Severity: entity.ParseSeverity(lua.LVAsString(t.RawGetString("severity"))),
			Message:  lua.LVAsString(t.RawGetString("message")),
			Line:     int(lua.LVAsNumber(t.RawGetString("line"))),
			Column:   int(lua.LVAsNumber(t.RawGetString("column"))),
		})
	})

	return res, err
}
