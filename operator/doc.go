// Package operator answers the crane chain's choose queries on behalf of a
// human operator.
//
// A Service listens on the remote end of a bus switch, decodes each Req as a
// crane.Query and asks a Chooser which variant to take. CannedChooser always
// returns fixed positions; LuaChooser runs a user script in a sandboxed
// gopher-lua state:
//
//	function choose_hook(variants)
//	  for i, h in ipairs(variants) do
//	    if h.shank_diameter >= 80 then return i end
//	  end
//	  return 1
//	end
//
//	function choose_bearing(variants) return 1 end
//
// Indexes returned by scripts are 1-based.
package operator
